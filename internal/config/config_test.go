// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/model"
)

// isolateEnv clears every variable Load reads and restores them afterwards.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvOpenAIKey, EnvAnthropicKey, EnvGeminiKey, EnvOllamaHost, EnvProvider, "VISUAL", "EDITOR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v (%T), want *config.Error", err, err)
	}
	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want ValidateErrors inside", err)
	}
	fields := make([]string, len(verrs))
	for i, v := range verrs {
		fields[i] = v.Field
	}
	return fields
}

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}

// =============================================================================
// TEMPLATE TESTS
// =============================================================================

func TestTemplate_Loads(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "parrot", "config.toml")

	created, err := EnsureConfigFile(path)
	if err != nil || !created {
		t.Fatalf("EnsureConfigFile() = %v, %v; want true, nil", created, err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(template) error: %v", err)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", cfg.Warnings)
	}
	if cfg.Provider != model.ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if len(cfg.System.Instructions) != 3 {
		t.Errorf("instructions = %d, want 3", len(cfg.System.Instructions))
	}
	if cfg.OpenAI.MaxTokens.Value != 4096 {
		t.Errorf("openai.max_tokens = %d, want 4096", cfg.OpenAI.MaxTokens.Value)
	}
	// The anthropic section uses the step alias.
	if cfg.Anthropic.Temperature.Step != 0.1 {
		t.Errorf("anthropic.temperature step = %v, want 0.1", cfg.Anthropic.Temperature.Step)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if got := cfg.Commands.Editor; len(got) != 1 || got[0] != "vi" {
		t.Errorf("editor = %v, want [vi]", got)
	}
}

func TestTemplate_MatchesDefaults(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(writeConfig(t, string(Template())))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.UI != def.UI {
		t.Errorf("template ui = %+v, defaults = %+v", cfg.UI, def.UI)
	}
	if cfg.OpenAI.Temperature != def.OpenAI.Temperature {
		t.Errorf("template openai.temperature = %+v, defaults = %+v", cfg.OpenAI.Temperature, def.OpenAI.Temperature)
	}
	if cfg.Ollama.URL != def.Ollama.URL {
		t.Errorf("template ollama.url = %q, defaults = %q", cfg.Ollama.URL, def.Ollama.URL)
	}
}

func TestEnsureConfigFile_KeepsExisting(t *testing.T) {
	path := writeConfig(t, "provider = \"gemini\"\n")

	created, err := EnsureConfigFile(path)
	if err != nil || created {
		t.Fatalf("EnsureConfigFile() = %v, %v; want false, nil", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "provider = \"gemini\"\n" {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoad_PartialFileUsesDefaults(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(writeConfig(t, "provider = \"anthropic\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Provider != model.ProviderAnthropic {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if len(cfg.OpenAI.Models) == 0 {
		t.Error("openai models should fall back to the catalog")
	}
	if len(cfg.System.Instructions) != 1 {
		t.Errorf("instructions = %d, want the single default", len(cfg.System.Instructions))
	}
}

func TestLoad_ListsReplaceDefaults(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(writeConfig(t, `
[openai]
model = "my-finetune"
models = ["gpt-4o-mini"]

[[system.instructions]]
name = "Only"
message = "Just this one."
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []string{"my-finetune", "gpt-4o-mini"}
	if strings.Join(cfg.OpenAI.Models, ",") != strings.Join(want, ",") {
		t.Errorf("models = %v, want %v", cfg.OpenAI.Models, want)
	}
	if len(cfg.System.Instructions) != 1 || cfg.System.Instructions[0].Name != "Only" {
		t.Errorf("instructions = %+v", cfg.System.Instructions)
	}
}

func TestLoad_PartialRangeKeepsDefaultBounds(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(writeConfig(t, "[openai]\ntemperature = { value = 0.3 }\nmax_tokens = 1024\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	got := cfg.OpenAI.Temperature
	if got.Value != 0.3 || got.Min != 0 || got.Max != 2 || got.Step != 0.1 {
		t.Errorf("temperature = %+v", got)
	}
	if cfg.OpenAI.MaxTokens.Value != 1024 {
		t.Errorf("max_tokens = %d, want 1024", cfg.OpenAI.MaxTokens.Value)
	}
}

func TestLoad_UnknownKeysWarn(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(writeConfig(t, "[ui]\ncolour = \"red\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "ui.colour") {
		t.Errorf("Warnings = %v", cfg.Warnings)
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "provider = \n")

	_, err := Load(path)

	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *config.Error", err)
	}
	if cfgErr.Path != path {
		t.Errorf("Path = %q, want %q", cfgErr.Path, path)
	}
	var parseErr toml.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %v, want toml.ParseError inside", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolateEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad provider", `provider = "cohere"`, "provider"},
		{"empty editor", "[commands]\neditor = []", "commands.editor"},
		{"zero prompt", "[ui]\nprompt_height = 0", "ui.prompt_height"},
		{"inverted range", "[openai]\ntop_p = { value = 0.5, min = 1.0, max = 0.0 }", "openai.top_p"},
		{"value outside", "[anthropic]\ntemperature = 3.0", "anthropic.temperature"},
		{"zero step", "[gemini]\nmax_tokens = { step = 0 }", "gemini.max_tokens"},
		{"bad url", "[ollama]\nurl = \"localhost\"", "ollama.url"},
		{"empty model", "[ollama]\nmodel = \"\"", "ollama.model"},
		{"empty instruction", "[[system.instructions]]\nname = \"x\"\nmessage = \" \"", "system.instructions[0].message"},
		{"unknown action", "[hotkeys]\nfly = [\"ctrl f\"]", "hotkeys.fly"},
		{"bad binding", "[hotkeys]\nquit = [\"hyper q\"]", "hotkeys.quit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			isolateEnv(t)
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("Load() succeeded, want error on %s", tc.field)
			}
			fields := validationFields(t, err)
			if !containsField(fields, tc.field) {
				t.Errorf("fields = %v, want %s", fields, tc.field)
			}
		})
	}
}

func TestValidate_BadBindingMessage(t *testing.T) {
	isolateEnv(t)
	_, err := Load(writeConfig(t, "[hotkeys]\nquit = [\"hyper q\"]\n"))
	if err == nil || !strings.Contains(err.Error(), "unrecognized modifier key: 'hyper'") {
		t.Errorf("error = %v, want the modifier named", err)
	}
}

func TestValidateErrors_Join(t *testing.T) {
	errs := ValidateErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	if got := errs.Error(); got != "a: x; b: y" {
		t.Errorf("Error() = %q", got)
	}
}

// =============================================================================
// ENVIRONMENT TESTS
// =============================================================================

func TestApplyEnvOverrides_Environment(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvAnthropicKey, "sk-ant-env")
	t.Setenv(EnvOllamaHost, "gpu-box:11434")
	t.Setenv(EnvProvider, " Ollama ")

	cfg, err := Load(writeConfig(t, "[anthropic]\nkey = \"sk-ant-file\"\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Anthropic.Key != "sk-ant-env" {
		t.Errorf("anthropic key = %q, want env value", cfg.Anthropic.Key)
	}
	if cfg.Ollama.URL != "http://gpu-box:11434" {
		t.Errorf("ollama url = %q", cfg.Ollama.URL)
	}
	if cfg.Provider != model.ProviderOllama {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
}

func TestApplyEnvOverrides_DotEnv(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "")
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := os.WriteFile(envFile, []byte("GEMINI_API_KEY=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Gemini.Key != "from-dotenv" {
		t.Errorf("gemini key = %q, want from-dotenv", cfg.Gemini.Key)
	}
}

// =============================================================================
// HOTKEY TESTS
// =============================================================================

func TestHotkeyOverrides(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(writeConfig(t, "[hotkeys]\nquit_program = [\"ctrl x\", \"ctrl q\"]\ncopy = []\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	overrides, err := cfg.HotkeyOverrides()
	if err != nil {
		t.Fatal(err)
	}
	if got := overrides[hotkey.QuitProgram]; len(got) != 2 || got[0] != hotkey.MustParse("ctrl x") {
		t.Errorf("quit_program = %v", got)
	}
	if got, ok := overrides[hotkey.Copy]; !ok || len(got) != 0 {
		t.Errorf("copy = %v, %v; want explicit empty list", got, ok)
	}
}

// =============================================================================
// PARAM TESTS
// =============================================================================

func TestParams_AdjustInPlace(t *testing.T) {
	cfg := Default()
	params := cfg.Params(model.ProviderOpenAI)
	if len(params) != 6 || params[0].Name != "model" {
		t.Fatalf("params = %d, first %q", len(params), params[0].Name)
	}

	params[1].Increment()
	if cfg.OpenAI.Temperature.Value != 1.1 {
		t.Errorf("temperature = %v, want 1.1", cfg.OpenAI.Temperature.Value)
	}
	if params[1].Value() != "1.1" {
		t.Errorf("Value() = %q, want 1.1", params[1].Value())
	}

	for i := 0; i < 100; i++ {
		params[5].Increment()
	}
	if cfg.OpenAI.MaxTokens.Value != cfg.OpenAI.MaxTokens.Max {
		t.Errorf("max_tokens = %d, want clamped to %d", cfg.OpenAI.MaxTokens.Value, cfg.OpenAI.MaxTokens.Max)
	}
}

func TestParams_ModelCycles(t *testing.T) {
	cfg := Default()
	cfg.Anthropic.Models = []string{"a", "b", "c"}
	cfg.Anthropic.Model = "a"
	m := cfg.Params(model.ProviderAnthropic)[0]

	m.Decrement()
	if cfg.Anthropic.Model != "c" {
		t.Errorf("Decrement from first = %q, want c", cfg.Anthropic.Model)
	}
	m.Increment()
	m.Increment()
	if cfg.Anthropic.Model != "b" {
		t.Errorf("model = %q, want b", cfg.Anthropic.Model)
	}
}

func TestSetOllamaModels(t *testing.T) {
	cfg := Default()
	cfg.Ollama.Model = "gone"
	cfg.SetOllamaModels([]string{"mistral", "phi3"})
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("model = %q, want first installed", cfg.Ollama.Model)
	}

	cfg.SetOllamaModels(nil)
	if len(cfg.Ollama.Models) != 2 {
		t.Errorf("empty refresh should keep the list, got %v", cfg.Ollama.Models)
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.OpenAI.Models[0] = "changed"
	cp.OpenAI.Temperature.Increment()
	cp.System.Instructions[0].Name = "changed"

	if cfg.OpenAI.Models[0] == "changed" || cfg.System.Instructions[0].Name == "changed" {
		t.Error("Clone shares slices with the original")
	}
	if cfg.OpenAI.Temperature == cp.OpenAI.Temperature {
		t.Error("Clone shares ranges with the original")
	}
}

func TestInstructionPreview(t *testing.T) {
	instr := Instruction{Message: "line one\nline   two"}
	if got := instr.Preview(12); got != "line one lin" {
		t.Errorf("Preview(12) = %q", got)
	}
	if got := instr.Preview(100); got != "line one line two" {
		t.Errorf("Preview(100) = %q", got)
	}
}

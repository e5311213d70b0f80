package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	AI struct {
		Provider  string `yaml:"provider"`
		Model     string `yaml:"model"`
		APIKey    string `yaml:"api_key"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"ai"`
	Prompts struct {
		RefineRequirement        string `yaml:"refine_requirement"`
		RefineDesign             string `yaml:"refine_design"`
		RefineImplementation     string `yaml:"refine_implementation"`
		RegenerateDesign         string `yaml:"regenerate_design"`
		RegenerateImplementation string `yaml:"regenerate_implementation"`
		Tersify                  string `yaml:"tersify"`
	} `yaml:"prompts"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.AI.Provider = "gemini"
	cfg.AI.MaxTokens = 8192

	// 2. Load YAML config if present
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	}

	// 3. Override with environment variables if present
	if apiKey := os.Getenv("PROMPTPRESS_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("PROMPTPRESS_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("PROMPTPRESS_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if maxTokens := os.Getenv("PROMPTPRESS_MAX_TOKENS"); maxTokens != "" {
		if n, err := strconv.Atoi(maxTokens); err == nil {
			cfg.AI.MaxTokens = n
		}
	}

	return cfg, nil
}

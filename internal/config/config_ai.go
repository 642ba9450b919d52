package config

// AI operation names, used for per-operation config, breakers and metrics
const (
	OperationParse     = "parse"
	OperationQuestions = "questions"
	OperationATS       = "ats"
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetOperationConfig returns the AI configuration for an operation with
// fallback to the global config. Unknown operations get the global values.
func (c *Config) GetOperationConfig(operation string) OperationAIConfig {
	var config OperationAIConfig
	switch operation {
	case OperationParse:
		config = c.AI.Parse
	case OperationQuestions:
		config = c.AI.Questions
	case OperationATS:
		config = c.AI.ATS
	}
	c.applyOperationDefaults(&config)
	return config
}

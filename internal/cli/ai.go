package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/common"
	"resumeforge/internal/config"
	"resumeforge/internal/editor"
	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
	"resumeforge/internal/remote"
	"resumeforge/internal/resume"
	"resumeforge/internal/store"
	"resumeforge/internal/types"
	"resumeforge/internal/utils"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Parse a resume file into the local store",
	Long: `Parse a resume file and store the result. JSON and YAML documents are
imported as they are; text, markdown and PDF files are parsed by AI.

AI runs locally when an AI API key is configured, otherwise the request goes
to the backend when sync is enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions for a role",
	Long: `Generate interview questions for a role and experience level. Skills are
taken from --skills, or from the stored resume when --with-resume is given.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return defaultOutputFormat(cmd, &questionsConfig)
	},
	RunE: runQuestions,
}

var atsCmd = &cobra.Command{
	Use:   "ats [resume-file]",
	Short: "Score a resume against a job description",
	Long: `Score a resume against a job description the way an applicant tracking
system would. Without a resume file the stored resume is scored.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return defaultOutputFormat(cmd, &atsConfig)
	},
	RunE: runATS,
}

var (
	questionsConfig     common.CommandConfig
	questionsRole       string
	questionsExperience string
	questionsSkills     string
	questionsWithResume bool

	atsConfig  common.CommandConfig
	atsJobFile string
)

func init() {
	uploadCmd.Flags().BoolVar(&pushOnWrite, "push", false, "Push the resume to the backend after saving")

	questionsCmd.Flags().StringVarP(&questionsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	questionsCmd.Flags().StringVar(&questionsConfig.OutputFormat, "format", "", "Output format: json, yaml, text, or markdown")
	questionsCmd.Flags().StringVar(&questionsRole, "role", "", "Role the questions are for")
	questionsCmd.Flags().StringVar(&questionsExperience, "experience", types.ExperienceMid, "Experience level: junior, mid, or senior")
	questionsCmd.Flags().StringVar(&questionsSkills, "skills", "", "Comma separated skills to focus on")
	questionsCmd.Flags().BoolVar(&questionsWithResume, "with-resume", false, "Send the stored resume along with the request")
	_ = questionsCmd.MarkFlagRequired("role")

	atsCmd.Flags().StringVarP(&atsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	atsCmd.Flags().StringVar(&atsConfig.OutputFormat, "format", "", "Output format: json, yaml, text, or markdown")
	atsCmd.Flags().StringVar(&atsJobFile, "job", "", "Job description file")
	_ = atsCmd.MarkFlagRequired("job")
}

func defaultOutputFormat(cmd *cobra.Command, cmdConfig *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	// Apply default format if not specified
	if cmdConfig.OutputFormat == "" {
		cmdConfig.OutputFormat = cfg.App.DefaultFormat
	}
	cmdConfig.Out = cmd.OutOrStdout()
	return common.ValidateOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
}

// aiBackend runs an AI operation locally when a key is configured and
// through the backend otherwise.
type aiBackend struct {
	local  *ai.Service
	remote *remote.Client
}

func newAIBackend(cfg *config.Config, operation string, logger *errors.Logger) (*aiBackend, error) {
	if cfg.AI.APIKey != "" {
		opCfg := cfg.GetOperationConfig(operation)
		svc, err := ai.NewService(&opCfg, operation, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI service: %w", err)
		}
		return &aiBackend{local: svc}, nil
	}
	if cfg.Sync.Enabled {
		client, err := newRemoteClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return &aiBackend{remote: client}, nil
	}
	return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
		"no AI available: set RESUMEFORGE_AI_APIKEY or enable sync with a backend", nil)
}

func (b *aiBackend) Close() {
	if b.local != nil {
		_ = b.local.Provider.Close()
	}
}

func (b *aiBackend) parse(ctx context.Context, filename string, content []byte, text string) (resume.Document, *ai.TokenUsage, error) {
	if b.remote != nil {
		doc, err := b.remote.UploadResume(ctx, filename, content)
		return doc, nil, err
	}
	raw, usage, err := b.local.Provider.ParseResume(ctx, text)
	if err != nil {
		return resume.Document{}, usage, err
	}
	doc, err := resume.Decode(raw)
	return doc, usage, err
}

func (b *aiBackend) questions(ctx context.Context, req types.GenerateQuestionsRequest) (types.GenerateQuestionsResponse, *ai.TokenUsage, error) {
	if b.remote != nil {
		out, err := b.remote.GenerateQuestions(ctx, req)
		return out, nil, err
	}
	return b.local.Provider.GenerateQuestions(ctx, req)
}

func (b *aiBackend) scoreATS(ctx context.Context, resumeText, jobDescription string) (types.ATSReport, *ai.TokenUsage, error) {
	if b.remote != nil {
		out, err := b.remote.ATSDetails(ctx, "resume.txt", []byte(resumeText), jobDescription)
		return out, nil, err
	}
	return b.local.Provider.ScoreATS(ctx, resumeText, jobDescription)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	filename := args[0]

	return withStore(cmd, func(st *store.Store, logger *errors.Logger) error {
		if err := utils.ValidateInputFile(filename); err != nil {
			return errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("Invalid file %s", filename), err)
		}
		fp := common.NewFileProcessor(logger)
		content, err := fp.ReadFile(filename)
		if err != nil {
			return err
		}

		var doc resume.Document
		if utils.IsStructuredFile(filename) {
			doc, err = resume.DecodeFile(filename, content)
		} else {
			doc, err = parseWithAI(ctx, cfg, logger, fp, filename, content)
		}
		if err != nil {
			return err
		}

		if err := st.Hydrate(ctx, doc); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resume parsed from %s\n", filename)
		for _, p := range resume.CheckRequired(&doc) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  still missing %s: %s\n", p.Field, p.Message)
		}
		afterWrite(cmd, st, logger)
		return nil
	})
}

func parseWithAI(ctx context.Context, cfg *config.Config, logger *errors.Logger, fp *common.FileProcessor,
	filename string, content []byte) (resume.Document, error) {
	backend, err := newAIBackend(cfg, config.OperationParse, logger)
	if err != nil {
		return resume.Document{}, err
	}
	defer backend.Close()

	text := ""
	if backend.local != nil {
		if text, err = fp.ReadText(filename); err != nil {
			return resume.Document{}, err
		}
	}

	logger.Info("Parsing resume", "file", filename, "bytes", len(content), "remote", backend.remote != nil)
	doc, usage, err := backend.parse(ctx, filepath.Base(filename), content, text)
	if err != nil {
		return resume.Document{}, err
	}
	if usage != nil {
		logger.Info("AI token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}
	return doc, nil
}

func runQuestions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	req := types.GenerateQuestionsRequest{
		Role:       strings.TrimSpace(questionsRole),
		Experience: strings.ToLower(strings.TrimSpace(questionsExperience)),
		Skills:     editor.SplitComma(questionsSkills),
	}
	if questionsWithResume {
		if err := withStore(cmd, func(st *store.Store, _ *errors.Logger) error {
			doc := st.Get()
			raw, err := resume.Encode(doc)
			if err != nil {
				return err
			}
			req.Resume = raw
			if len(req.Skills) == 0 {
				req.Skills = skillKeywords(doc)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	backend, err := newAIBackend(cfg, config.OperationQuestions, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	err = common.RunAICommand(
		ctx,
		logger,
		questionsConfig,
		nil,
		func([]string) (types.GenerateQuestionsRequest, error) { return req, nil },
		backend.questions,
		func(input types.GenerateQuestionsRequest, cfg common.CommandConfig) {
			logger.Info("Generating interview questions",
				"role", input.Role,
				"experience", input.Experience,
				"skills", len(input.Skills),
				"output_format", cfg.OutputFormat)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	return nil
}

func skillKeywords(doc resume.Document) []string {
	var out []string
	for _, s := range doc.Skills {
		for _, k := range s.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

type atsInput struct {
	Resume         string
	JobDescription string
}

func runATS(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	files := append(append([]string{}, args...), atsJobFile)

	storedText := ""
	if len(args) == 0 {
		if err := withStore(cmd, func(st *store.Store, _ *errors.Logger) error {
			doc := st.Get()
			if !hasAnyContent(&doc) {
				return errors.NewValidationError(errors.ErrCodeInvalidInput,
					"the stored resume is empty, pass a resume file instead", nil)
			}
			var err error
			storedText, err = formatters.GlobalRegistry.Format(doc, "text")
			return err
		}); err != nil {
			return err
		}
	}

	backend, err := newAIBackend(cfg, config.OperationATS, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	createInput := func(contents []string) (atsInput, error) {
		if len(contents) == 2 {
			return atsInput{Resume: contents[0], JobDescription: contents[1]}, nil
		}
		if len(contents) == 1 && storedText != "" {
			return atsInput{Resume: storedText, JobDescription: contents[0]}, nil
		}
		return atsInput{}, fmt.Errorf("expected a resume and a job description, got %d files", len(contents))
	}

	err = common.RunAICommand(
		ctx,
		logger,
		atsConfig,
		files,
		createInput,
		func(ctx context.Context, in atsInput) (types.ATSReport, *ai.TokenUsage, error) {
			return backend.scoreATS(ctx, in.Resume, in.JobDescription)
		},
		func(input atsInput, cfg common.CommandConfig) {
			logger.Info("Starting ATS analysis",
				"resume_chars", len(input.Resume),
				"job_chars", len(input.JobDescription),
				"output_format", cfg.OutputFormat)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	return nil
}

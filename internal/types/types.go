// Package types defines core data types and the error taxonomy for PPTrans.
package types

import "time"

// Config 应用配置
type Config struct {
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"` // OpenAI 兼容 API 的 Base URL
	OpenAIModel   string `json:"openai_model"`
	BatchSize     int    `json:"batch_size"`     // 每个翻译批次的最大条目数
	Concurrency   int    `json:"concurrency"`    // 翻译并发数，默认为 3
	MaxRetries    int    `json:"max_retries"`    // 单批次最大重试次数
	GlossaryPath  string `json:"glossary_path"`  // 术语表文件路径（可选）
	WorkDirectory string `json:"work_directory"`
	LastInput     string `json:"last_input"` // 最后一次输入的文件路径
}

// ProcessPhase 处理阶段枚举
type ProcessPhase string

const (
	PhaseIdle          ProcessPhase = "idle"
	PhaseLoaded        ProcessPhase = "loaded"
	PhaseExtracted     ProcessPhase = "extracted"
	PhaseTranslated    ProcessPhase = "translated"
	PhaseRedistributed ProcessPhase = "redistributed"
	PhaseApplied       ProcessPhase = "applied"
	PhaseSaved         ProcessPhase = "saved"
	PhaseClosed        ProcessPhase = "closed"
)

// Status 处理状态
type Status struct {
	Phase    ProcessPhase `json:"phase"`
	Progress int          `json:"progress"` // 0-100
	Message  string       `json:"message"`
	Error    string       `json:"error,omitempty"`
}

// ProcessingStats tracks counters accumulated over a pipeline run.
type ProcessingStats struct {
	TotalSlides        int           `json:"total_slides"`
	SlidesProcessed    int           `json:"slides_processed"`
	ElementsFound      int           `json:"elements_found"`
	ElementsTranslated int           `json:"elements_translated"`
	ElementsSkipped    int           `json:"elements_skipped"`
	Errors             int           `json:"errors"`
	ElapsedTime        time.Duration `json:"elapsed_time"`
}

// ProcessResult 处理结果
type ProcessResult struct {
	InputPath  string           `json:"input_path"`
	OutputPath string           `json:"output_path"`
	SourceLang string           `json:"source_lang"`
	TargetLang string           `json:"target_lang"`
	Stats      *ProcessingStats `json:"stats"`
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrDocumentLoad ErrorCode = "DOCUMENT_LOAD_ERROR"
	ErrSave         ErrorCode = "SAVE_ERROR"
	ErrRangeSyntax  ErrorCode = "RANGE_SYNTAX_ERROR"
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrAuth         ErrorCode = "AUTH_ERROR"
	ErrTranslation  ErrorCode = "TRANSLATION_ERROR"
	ErrLanguage     ErrorCode = "LANGUAGE_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode of err, or ErrInternal when err is not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}

// UserMessage derives a user-facing message from an error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return "An error occurred: " + err.Error()
	}

	switch appErr.Code {
	case ErrDocumentLoad:
		return "PowerPoint processing error: " + appErr.Message
	case ErrSave:
		return "File operation failed: " + appErr.Message
	case ErrRangeSyntax:
		return "Invalid slide range: " + appErr.Message
	case ErrNetwork:
		return "Network connection error. Please check your internet connection and try again."
	case ErrAPIRateLimit:
		return "Translation service temporarily unavailable due to high usage. Please try again later."
	case ErrAuth:
		return "Authentication failed. Please check your API credentials."
	case ErrTranslation, ErrAPICall:
		return "Translation failed: " + appErr.Message
	case ErrLanguage:
		return "Language not supported: " + appErr.Message
	default:
		return "An error occurred: " + appErr.Message
	}
}

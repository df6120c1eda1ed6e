package core

type ctxKey string

const (
	CtxKeyRunId      ctxKey = ctxKey("runId")
	CtxKeyWorkflowId ctxKey = ctxKey("workflowId")
	CtxKeyApiKeyUsed ctxKey = ctxKey("apiKeyUsed")
)

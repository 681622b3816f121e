package service

// Job names double as bus subjects (see events.Subject).
const (
	JobProcessMessage      = "process_message"
	JobProcessQuery        = "process_query"
	JobEnrichDecision      = "enrich_decision"
	JobGenerateEmbedding   = "generate_embedding"
	JobBackfillHistory     = "backfill_history"
	JobExpireConfirmations = "expire_confirmations"
	JobResolveConfirmation = "resolve_confirmation"
)

// AllJobs is every job the worker subscribes to.
var AllJobs = []string{
	JobProcessMessage,
	JobProcessQuery,
	JobEnrichDecision,
	JobGenerateEmbedding,
	JobBackfillHistory,
	JobExpireConfirmations,
	JobResolveConfirmation,
}

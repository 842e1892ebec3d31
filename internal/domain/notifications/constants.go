package notifications

const (
	TypeDraftSubmitted = "draft_submitted"
	TypeDraftApproved  = "draft_approved"
	TypeDraftRejected  = "draft_rejected"
)

package qrlogin

import "context"

// KeyReply is the issue-key response after envelope decoding.
type KeyReply struct {
	Code int
	Key  string
}

// CodeReply is the render-code response. Either field may be empty.
type CodeReply struct {
	Image string
	URL   string
}

// StatusReply is one check-status response. Cookie is only set at 803.
type StatusReply struct {
	Code    int
	Message string
	Cookie  string
}

// Remote is the login service the coordinator drives. Implementations return
// an error only for transport or decoding failures; business codes are
// judged by the coordinator.
type Remote interface {
	IssueKey(ctx context.Context) (KeyReply, error)
	RenderCode(ctx context.Context, key string) (CodeReply, error)
	CheckStatus(ctx context.Context, key string) (StatusReply, error)
}

package netease

import (
	"context"

	"github.com/five82/cadence/internal/qrlogin"
)

// QRRemote adapts a Client to the coordinator's Remote interface.
type QRRemote struct {
	client *Client
}

// Ensure QRRemote implements qrlogin.Remote at compile time.
var _ qrlogin.Remote = (*QRRemote)(nil)

// NewQRRemote wraps client.
func NewQRRemote(client *Client) *QRRemote {
	return &QRRemote{client: client}
}

// IssueKey implements qrlogin.Remote. The outer code is authoritative.
func (r *QRRemote) IssueKey(ctx context.Context) (qrlogin.KeyReply, error) {
	resp, err := r.client.QRKey(ctx)
	if err != nil {
		return qrlogin.KeyReply{}, err
	}
	return qrlogin.KeyReply{Code: resp.Code, Key: resp.Data.UniKey}, nil
}

// RenderCode implements qrlogin.Remote.
func (r *QRRemote) RenderCode(ctx context.Context, key string) (qrlogin.CodeReply, error) {
	resp, err := r.client.QRCreate(ctx, key)
	if err != nil {
		return qrlogin.CodeReply{}, err
	}
	return qrlogin.CodeReply{Image: resp.Data.QRImg, URL: resp.Data.QRURL}, nil
}

// CheckStatus implements qrlogin.Remote.
func (r *QRRemote) CheckStatus(ctx context.Context, key string) (qrlogin.StatusReply, error) {
	resp, err := r.client.QRCheck(ctx, key)
	if err != nil {
		return qrlogin.StatusReply{}, err
	}
	return qrlogin.StatusReply{Code: resp.Code, Message: resp.Message, Cookie: resp.Cookie}, nil
}

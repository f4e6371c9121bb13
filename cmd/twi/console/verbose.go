package console

import (
	"context"

	"github.com/mklimuk/twi/twictx"
)

func SetVerbose(parent context.Context, value bool) context.Context {
	return twictx.SetVerbose(parent, value)
}

func IsVerbose(ctx context.Context) bool {
	return twictx.IsVerbose(ctx)
}

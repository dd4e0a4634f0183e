package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresPingWithoutPool(t *testing.T) {
	ctx := context.Background()

	var missing *Postgres
	assert.Error(t, missing.Ping(ctx), "nil wrapper must report unavailable")

	unconfigured := &Postgres{}
	assert.Error(t, unconfigured.Ping(ctx), "missing pool must report unavailable")
}

package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/oasbind/openapi"
)

func TestStubOperationsSkipsAnonymous(t *testing.T) {
	doc := openapi.DocBase("t", "", "1")
	openapi.Get(doc, "/named", "named", openapi.Endpoint{})
	openapi.Get(doc, "/anonymous", "", openapi.Endpoint{})
	_, spec, err := openapi.Build(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, spec.Operations(), 2)

	ops := stubOperations(spec, zerolog.Nop())
	assert.Equal(t, []string{"named"}, ops.OperationIDs())
}

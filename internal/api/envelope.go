package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/musicgenreator/genreator/internal/http/response"
)

// EnvelopeVersion is the current version of the response envelope.
const EnvelopeVersion = response.EnvelopeVersion

// APIEnvelope is the JSON body of every API response.
type APIEnvelope = response.Envelope //nolint:revive // API prefix is intentional for clarity

// metaRawBody marks operations whose success body is sent without an envelope.
const metaRawBody = "rawBody"

// EnvelopeTransformer wraps response bodies in the versioned envelope.
// Registered as a huma transformer, it runs for success and error bodies alike.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	switch body := v.(type) {
	case *APIError:
		return response.ErrorEnvelope(body.Code, body.Message, body.Details), nil
	case error:
		return response.ErrorEnvelope(response.CodeForStatus(code), body.Error(), nil), nil
	}

	if code >= 400 {
		return response.ErrorEnvelope(response.CodeForStatus(code), "request failed", nil), nil
	}

	if ctx != nil {
		if op := ctx.Operation(); op != nil {
			if raw, _ := op.Metadata[metaRawBody].(bool); raw {
				return v, nil
			}
		}
	}

	return response.SuccessEnvelope(v), nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"

	"github.com/hubeduai/tutor-tui/internal/nav"
)

// =============================================================================
// RESPONSE METADATA
// =============================================================================

// Metadata header names carried out-of-band on the streaming response.
const (
	headerProvider      = "X-Provider"
	headerModel         = "X-Model"
	headerModule        = "X-Module"
	headerComplexity    = "X-Complexity"
	headerRoutingTier   = "X-Routing-Tier"
	headerRoutingReason = "X-Routing-Reason"
)

// Metadata is the out-of-band response metadata. It is captured from
// headers as soon as the response arrives, before any body bytes.
type Metadata struct {
	Provider      string
	Model         string
	Module        nav.ModuleID
	Complexity    string
	RoutingTier   string
	RoutingReason string
}

// ParseMetadata extracts response metadata from headers. Unknown or
// missing server module identifiers default to the auto fallback,
// never to an error.
func ParseMetadata(h http.Header) Metadata {
	return Metadata{
		Provider:      h.Get(headerProvider),
		Model:         h.Get(headerModel),
		Module:        nav.ParseModuleID(h.Get(headerModule)),
		Complexity:    h.Get(headerComplexity),
		RoutingTier:   h.Get(headerRoutingTier),
		RoutingReason: h.Get(headerRoutingReason),
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the Ollama chat API.
//
// This is the external completion service collaborator: given a model, a
// message sequence and sampling options it returns one completion. The client
// does not retry; failures surface as typed ClientError values for the caller
// to classify. Backpressure lives here too, as an optional client-side rate
// limiter, so the orchestration layer stays free of throttling concerns.
package ollama

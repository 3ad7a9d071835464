// Package http provides HTTP handlers and middleware for the duty roster API.
//
// The router exposes the following endpoints:
//   - POST /session: logs a roster member in. Body: {"nim"}. Response:
//     {"member":{"nim","name"},"state"}.
//   - GET /session: reports the current guard state and identity, if any.
//   - DELETE /session: logs out immediately. Returns 204 No Content.
//   - POST /session/activity: records a user-activity ping; also dismisses a
//     pending idle warning. Returns 204 No Content.
//   - GET /schedules?date=YYYY-MM-DD: duty assignments for a calendar day.
//   - GET /schedules/upcoming?participant=&limit=: the next assignments for a
//     member, today or later, ascending.
//   - POST /schedules/extend: grows the generated window to cover a target
//     date. Body: {"target_date":"YYYY-MM-DD"}.
//   - POST /proofs: submits an inspection proof for today's schedule.
//   - GET /proofs?date=YYYY-MM-DD: proofs submitted on a calendar day.
//   - GET /proofs/status?date=&participant=: whether a proof exists for the
//     given day and member.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

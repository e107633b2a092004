package service

import "roomgate-backend/internal/domain"

// ModeDecision is the outcome of resolving a room's join mode against a
// submitted access code.
type ModeDecision struct {
	Allow       bool
	AutoApprove bool
}

// ResolveAccessMode maps a room's join mode to an admission outcome.
// codeOK is the result of verifying the submitted access code and is only
// consulted for keyed rooms.
//
//	OPEN  → allow, auto-approve
//	KNOCK → allow, stays pending for a human decision
//	KEYED → allow only on a matching code, stays pending
func ResolveAccessMode(mode domain.JoinMode, codeOK bool) ModeDecision {
	switch mode {
	case domain.JoinModeOpen:
		return ModeDecision{Allow: true, AutoApprove: true}
	case domain.JoinModeKnock:
		return ModeDecision{Allow: true, AutoApprove: false}
	case domain.JoinModeKeyed:
		return ModeDecision{Allow: codeOK, AutoApprove: false}
	default:
		return ModeDecision{}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package role

import "errors"

// ErrConflictingModes reports that more than one of the shell, describe and
// code modes was requested, or that a mode flag was combined with an
// explicit role selection.
var ErrConflictingModes = errors.New("only one of shell, describe-shell and code modes can be selected")

// Selector expresses how the caller picked a role: either an explicit name,
// or derivation from mode flags.
type Selector struct {
	// Name selects a role explicitly. When set, no mode flag may be set.
	Name string

	// Mode flags. At most one may be true.
	Shell         bool
	DescribeShell bool
	Code          bool
}

// Resolve maps a selector to a concrete role. Mode flags derive built-in
// roles; an empty selector yields the default role. An explicit name
// combined with any mode flag is a conflict, as is more than one mode flag.
func (r *Registry) Resolve(sel Selector) (Role, error) {
	modes := 0
	if sel.Shell {
		modes++
	}
	if sel.DescribeShell {
		modes++
	}
	if sel.Code {
		modes++
	}
	if modes > 1 {
		return Role{}, ErrConflictingModes
	}
	if sel.Name != "" && modes > 0 {
		return Role{}, ErrConflictingModes
	}

	switch {
	case sel.Name != "":
		return r.Get(sel.Name)
	case sel.Shell:
		return r.Get(ShellRoleName)
	case sel.DescribeShell:
		return r.Get(DescribeRoleName)
	case sel.Code:
		return r.Get(CodeRoleName)
	default:
		return r.Get(DefaultRoleName)
	}
}

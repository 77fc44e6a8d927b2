// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package role

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/termgpt/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// UnknownRoleError reports a lookup for a role that is neither built-in nor
// stored on disk.
type UnknownRoleError struct {
	Name string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role: %s", e.Name)
}

// RoleExistsError reports an attempt to create a role whose name is taken.
type RoleExistsError struct {
	Name string
}

func (e *RoleExistsError) Error() string {
	return fmt.Sprintf("role already exists: %s", e.Name)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry resolves role names to roles. Built-ins are checked first, then
// one JSON file per custom role in dir. Lookups hit the disk each time so
// an externally created role file is visible without restart.
type Registry struct {
	dir      string
	builtins map[string]Role
}

// NewRegistry creates a registry backed by dir for custom roles. The
// directory is created lazily on first write, not here.
func NewRegistry(dir string) *Registry {
	builtins := make(map[string]Role)
	for _, r := range Builtins() {
		builtins[r.Name] = r
	}
	return &Registry{dir: dir, builtins: builtins}
}

// IsBuiltin reports whether name is a compiled-in role.
func (r *Registry) IsBuiltin(name string) bool {
	_, ok := r.builtins[name]
	return ok
}

// Get returns the role for name, checking built-ins before the role
// directory. Returns *UnknownRoleError when neither has it.
func (r *Registry) Get(name string) (Role, error) {
	if role, ok := r.builtins[name]; ok {
		return role, nil
	}

	data, err := os.ReadFile(r.rolePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Role{}, &UnknownRoleError{Name: name}
		}
		return Role{}, fmt.Errorf("failed to read role %s: %w", name, err)
	}

	var role Role
	if err := json.Unmarshal(data, &role); err != nil {
		return Role{}, fmt.Errorf("failed to parse role %s: %w", name, err)
	}
	if role.Output == "" {
		role.Output = OutputFreeText
	}
	// The filename is authoritative for the name.
	role.Name = name
	return role, nil
}

// Create stores a new custom role. Built-in names cannot be shadowed and an
// existing custom role is never silently overwritten.
func (r *Registry) Create(name, systemPrompt string) (Role, error) {
	if err := validateRoleName(name); err != nil {
		return Role{}, err
	}
	if r.IsBuiltin(name) {
		return Role{}, &RoleExistsError{Name: name}
	}
	if _, err := os.Stat(r.rolePath(name)); err == nil {
		return Role{}, &RoleExistsError{Name: name}
	}

	if err := os.MkdirAll(r.dir, 0700); err != nil {
		return Role{}, fmt.Errorf("failed to create roles directory: %w", err)
	}

	role := Role{Name: name, SystemPrompt: systemPrompt, Output: OutputFreeText}
	data, err := json.MarshalIndent(role, "", "  ")
	if err != nil {
		return Role{}, fmt.Errorf("failed to encode role: %w", err)
	}
	if err := util.AtomicWriteFile(r.rolePath(name), data, 0600); err != nil {
		return Role{}, fmt.Errorf("failed to write role: %w", err)
	}
	return role, nil
}

// List returns the names of all roles, built-ins first, then custom roles
// sorted alphabetically.
func (r *Registry) List() ([]string, error) {
	names := make([]string, 0, len(r.builtins))
	for _, b := range Builtins() {
		names = append(names, b.Name)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return names, nil
		}
		return nil, fmt.Errorf("failed to read roles directory: %w", err)
	}

	var custom []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		custom = append(custom, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(custom)
	return append(names, custom...), nil
}

func (r *Registry) rolePath(name string) string {
	return filepath.Join(r.dir, name+".json")
}

func validateRoleName(name string) error {
	if name == "" {
		return fmt.Errorf("role name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid role name: %s", name)
	}
	return nil
}

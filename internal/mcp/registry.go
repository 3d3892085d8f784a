// Copyright (c) 2026 Breez MCP Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: the ordered tool registry backing the dispatcher.

import (
	"fmt"

	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// DuplicateToolError is returned when a tool name is registered twice.
// Duplicate names would make dispatch ambiguous, so registration fails
// instead of silently overwriting.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// registry holds the tool set in registration order.  It is populated once
// during construction and read-only afterwards, so no locking is needed.
type registry struct {
	order []string
	tools map[string]mcpsrv.ServerTool
}

func newRegistry() *registry {
	return &registry{
		tools: make(map[string]mcpsrv.ServerTool),
	}
}

func (r *registry) register(t mcpsrv.ServerTool) error {
	name := t.Tool.Name
	if _, exist := r.tools[name]; exist {
		return &DuplicateToolError{Name: name}
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

func (r *registry) get(name string) (mcpsrv.ServerTool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// names returns the tool names in registration order.
func (r *registry) names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

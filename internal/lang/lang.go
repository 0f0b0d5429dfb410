// Package lang wires the built-in block languages into a parser registry.
package lang

import (
	"github.com/jarredhawkins/goblock-lsp/internal/lang/ada"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/applescript"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/bash"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/cobol"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/crystal"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/elixir"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/erlang"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/fortran"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/julia"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/lua"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/matlab"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/octave"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/pascal"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/ruby"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/verilog"
	"github.com/jarredhawkins/goblock-lsp/internal/lang/vhdl"
	"github.com/jarredhawkins/goblock-lsp/internal/parser"
)

// Defaults returns a fresh instance of every built-in language
func Defaults() []parser.Language {
	return []parser.Language{
		ada.New(),
		applescript.New(),
		bash.New(),
		cobol.New(),
		crystal.New(),
		elixir.New(),
		erlang.New(),
		fortran.New(),
		julia.New(),
		lua.New(),
		matlab.New(),
		octave.New(),
		pascal.New(),
		ruby.New(),
		verilog.New(),
		vhdl.New(),
	}
}

// RegisterDefaults adds the built-in languages to r
func RegisterDefaults(r *parser.Registry) {
	for _, l := range Defaults() {
		r.Register(l)
	}
}

// NewRegistry returns a registry holding the built-in languages
func NewRegistry() *parser.Registry {
	r := parser.NewRegistry()
	RegisterDefaults(r)
	return r
}

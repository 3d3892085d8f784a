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

package breezmcp

// In this file: process configuration and validation.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/breez/breez-mcp/wallet"
)

// Transport selects the wire binding the server speaks.
type Transport string

const (
	// TransportStdio serves one MCP client over stdin/stdout for the
	// process lifetime (default).
	TransportStdio Transport = "stdio"
	// TransportHTTP serves concurrent MCP clients over Streamable HTTP.
	TransportHTTP Transport = "http"
)

// Config is the externally loaded configuration surface.  Credentials are
// secrets: they are passed to the wallet SDK on connect and must never appear
// in logs or error messages.
type Config struct {
	APIKey    string         `validate:"required"`
	Mnemonic  string         `validate:"required"`
	Network   wallet.Network `validate:"required,oneof=mainnet testnet"`
	DataDir   string         `validate:"required"`
	DaemonURL string         `validate:"required,url"`

	Transport Transport `validate:"required,oneof=stdio http"`
	HTTPAddr  string    `validate:"required_if=Transport http"`
	HTTPPath  string    `validate:"omitempty,startswith=/"`
}

// ErrTranslations is the english translator for validation errors.
var ErrTranslations ut.Translator

var validate = validator.New()

func init() {
	english := en.New()
	uni := ut.New(english, english)
	ErrTranslations, _ = uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, ErrTranslations); err != nil {
		panic(err)
	}
}

// applyDefaults fills the optional fields that have well-known defaults.
func (c *Config) applyDefaults() {
	if c.Network == "" {
		c.Network = wallet.Mainnet
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	if c.Transport == TransportHTTP {
		if c.HTTPAddr == "" {
			c.HTTPAddr = "127.0.0.1:8723"
		}
		if c.HTTPPath == "" {
			c.HTTPPath = "/mcp"
		}
	}
}

// Validate checks presence and shape of the configuration.  It returns a
// *ConfigError on any violation; callers treat that as fatal at startup.
func (c *Config) Validate() error {
	c.applyDefaults()
	if err := validate.Struct(c); err != nil {
		var vErr validator.ValidationErrors
		if errors.As(err, &vErr) {
			return &ConfigError{Err: fmt.Errorf("configuration failed validation: %s", vErr.Translate(ErrTranslations))}
		}
		return &ConfigError{Err: err}
	}
	// Shape check only.  Key derivation is the SDK's job.
	if n := len(strings.Fields(c.Mnemonic)); n != 12 && n != 24 {
		return &ConfigError{Err: fmt.Errorf("mnemonic must be 12 or 24 words, got %d", n)}
	}
	return nil
}

// ConfigError is returned when required credentials are absent or malformed.
// It aborts startup before any transport accepts connections.
type ConfigError struct {
	Err error
}

func (ce *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", ce.Err)
}

func (ce *ConfigError) Unwrap() error {
	return ce.Err
}

func (ce *ConfigError) Is(target error) bool {
	return target == ce.Err
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import "github.com/pdiddy/markitdown-dist/pkg/types"

const htmlFixture = `<html><body><h1>Hello, World!</h1><p>This is a <strong>test</strong> HTML file.</p><ul><li>Item 1</li><li>Item 2</li></ul></body></html>`

const textFixture = "Hello, World!\nThis is a test file.\nLine 3 of text."

const stdinFixture = "Test content from stdin"

// DefaultCases returns the fixed, ordered suite run against every staged
// binary. Each call returns fresh values.
func DefaultCases() []types.TestCase {
	return []types.TestCase{
		{
			Name:       "HTML file conversion",
			Fixture:    htmlFixture,
			FixtureExt: ".html",
			Mode:       types.ModeArgument,
			Assertions: []types.Assertion{
				{Label: "heading", AnyOf: []string{"# Hello, World!"}},
				{Label: "bold text", AnyOf: []string{"**test**"}},
				{Label: "list items", AnyOf: []string{"* Item 1", "- Item 1"}},
			},
		},
		{
			Name:       "Text file conversion",
			Fixture:    textFixture,
			FixtureExt: ".txt",
			Mode:       types.ModeArgument,
			Assertions: []types.Assertion{
				{Label: "text", AnyOf: []string{"Hello, World!"}},
			},
		},
		{
			Name:    "Stdin conversion",
			Fixture: stdinFixture,
			Mode:    types.ModeStdin,
			Assertions: []types.Assertion{
				{Label: "text", AnyOf: []string{"Test content from stdin"}},
			},
		},
	}
}

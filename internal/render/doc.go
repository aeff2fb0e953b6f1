// Package render turns a source document and its annotations into file
// content using a substitution template.
//
// The grammar is deliberately small: "{{name}}" tokens over a fixed schema,
// plus a single repeating section "{{#highlights}} ... {{/highlights}}"
// rendered once per annotation. It is not a general templating language.
//
// Validate checks a template without any data present, so it can run live
// while the user edits. Render is pure: identical inputs always produce
// identical output, which the sync engine relies on for content-hash
// comparison.
package render

// Package casing converts mapping keys between the snake_case convention used
// by Postgres/PostgREST and the camelCase convention used by the application
// document, at arbitrary depth.
package casing

import (
	"strings"

	"cineflex-backend/internal/docwalk"
)

// ToCamel rewrites a single snake_case key to camelCase. Keys without
// underscores pass through unchanged.
func ToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	upperNext := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' {
			// Only an underscore followed by a lowercase letter is a word
			// separator; anything else (trailing, doubled, digit-adjacent)
			// survives so the inverse can reproduce the original key.
			if i+1 < len(key) && key[i+1] >= 'a' && key[i+1] <= 'z' {
				upperNext = true
				continue
			}
			b.WriteByte(c)
			continue
		}
		if upperNext {
			c -= 'a' - 'A'
			upperNext = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToSnake rewrites a single camelCase key to snake_case.
func ToSnake(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('_')
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToAppKeys deep-converts every mapping key in value from snake_case to
// camelCase, returning a fresh value. Used on the read path.
func ToAppKeys(value any) any {
	return docwalk.Transform(value, ToCamel, nil)
}

// ToWireKeys deep-converts every mapping key in value from camelCase to
// snake_case, returning a fresh value. Used on the write path.
func ToWireKeys(value any) any {
	return docwalk.Transform(value, ToSnake, nil)
}

// ToAppMap and ToWireMap are the map-typed conveniences.
func ToAppMap(value map[string]any) map[string]any {
	return docwalk.TransformMap(value, ToCamel, nil)
}

func ToWireMap(value map[string]any) map[string]any {
	return docwalk.TransformMap(value, ToSnake, nil)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"model.obj", "obj"},
		{"Spaceship.GLB", "glb"},
		{"archive.tar.stl", "stl"},
		{"noextension", ""},
		{"", ""},
		{"texture.psd", "psd"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFromFilename(tt.filename))
		})
	}
}

func TestFormatAllowed(t *testing.T) {
	for _, format := range AllowedFormats() {
		assert.True(t, FormatAllowed(format), format)
	}

	assert.False(t, FormatAllowed("psd"))
	assert.False(t, FormatAllowed("exe"))
	assert.False(t, FormatAllowed(""))
	assert.False(t, FormatAllowed("OBJ"), "allow-list is lower-case only")
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"glb", "model/gltf-binary"},
		{"gltf", "application/json"},
		{"obj", "text/plain"},
		{"dae", "application/xml"},
		{"fbx", "application/octet-stream"},
		{"3ds", "application/octet-stream"},
		{"ply", "application/octet-stream"},
		{"stl", "application/octet-stream"},
		{"GLB", "model/gltf-binary"},
		{"unknown", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.expected, MIMEType(tt.format))
		})
	}
}

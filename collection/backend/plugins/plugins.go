// Package plugins lists the collection backends compiled into the binary
package plugins

import (
	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/collection/backend/bbolt"
	"github.com/jrife/warden/collection/backend/memory"
	"github.com/jrife/warden/collection/backend/sqlite"
)

var plugins []collection.Plugin

func init() {
	plugins = append(plugins, memory.Plugins()...)
	plugins = append(plugins, bbolt.Plugins()...)
	plugins = append(plugins, sqlite.Plugins()...)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) collection.Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists all the plugins that are available
func Plugins() []collection.Plugin {
	return plugins
}

// Names lists the names of all the plugins that are available
func Names() []string {
	names := make([]string, len(plugins))

	for i, plugin := range plugins {
		names[i] = plugin.Name()
	}

	return names
}

package config

import "runtime"

// defaultScriptFormat picks the recovery-script flavor matching the host
// platform. Overridable via --script-format for cross-generation.
func defaultScriptFormat() ScriptFormat {
	if runtime.GOOS == "windows" {
		return ScriptBatch
	}
	return ScriptShell
}

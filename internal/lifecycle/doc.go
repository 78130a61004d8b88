// Package lifecycle starts and supervises kernel processes on behalf of a
// provider. It is structured into small files by concern:
//
//   - types.go: Launcher, KernelManager, Request and Info.
//   - options.go: per-launch option resolution (lifecycle config, app config, defaults).
//   - ports.go: port reservation for the five kernel channels.
//   - connection.go: connection-file writing.
//   - local.go: LocalLauncher, which runs the spec's argv as a child process.
//   - events.go / eventpub_memory.go: launch event publishing.
//   - errors.go: error types and helpers (IsLaunchFailed).
//
// Providers treat a Launcher as an external component: they build a Request,
// call Launch once, and hand back whatever it returns.
package lifecycle

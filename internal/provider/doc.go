// Package provider resolves a kernel spec name into launch parameters for one
// lifecycle manager implementation and hands them to a lifecycle.Launcher.
//
// A Provider owns no kernel state. Each Launch call looks the spec up in the
// registry, checks that its metadata carries a lifecycle_manager stanza for
// the provider's lifecycle manager class, attaches the provider's section of
// the application configuration, and calls the launcher once. Registry and
// launcher errors are returned as-is; the only error a Provider produces
// itself is a config error for a spec without a matching stanza.
package provider

// Package deploy detects the deployment mode and resolves the base folder
// plus the prioritized list of settings sources that feed the runtime
// configuration merge. Exactly one of three mutually exclusive modes is
// chosen per process: platform-managed, standalone, or servlet.
package deploy

// Package synapse is a client for the Synapse repository and authentication
// REST services. A Client is bound to two endpoints: the repository service,
// which stores projects, datasets, layers, locations and their annotations,
// and the authentication service, which exchanges credentials for a session
// token attached to every later call.
//
// Entities travel as schema-flexible JSON objects (Entity). The service only
// offers full-replace PUT, so Update reads the stored entity, overlays the
// caller's fields and writes the result back guarded by the stored etag.
// Backup and restore run as server-side daemons; AwaitCompletion polls their
// status at a fixed interval until they leave the STARTED state.
//
// NewFromEnv bootstraps a Client from SYNAPSE_* environment variables and can
// fall back to the in-memory service in package mock.
package synapse

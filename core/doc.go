// Package core contains the Notion integration domain contracts: API call
// requests, webhook events, subscriber registrations, configuration and the
// error envelope shared by every adapter. Lower-level adapters depend on this
// package; core must not depend on transport or webhook adapters.
package core

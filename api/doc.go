// Package api holds the Notion operation units. Each unit builds one request,
// hands it to a core.APICaller and projects the response into a typed result.
// Id and rich-text helpers used to shape request bodies live here too.
package api

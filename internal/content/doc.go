// Package content turns stored portfolio records into presentation-ready
// structures: grouped skill sections, rendered markdown and project slugs.
package content

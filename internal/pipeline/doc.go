// Package pipeline runs the post-response steps of a scan in a fixed order.
//
// Once the server has answered, a Scan is passed through the steps: the
// logs step forwards system log lines to the log stream, the classify step
// derives the risk tier, the render step builds the report and the record
// step appends it to local history. The logs step always runs before
// classification and rendering for the same response.
package pipeline

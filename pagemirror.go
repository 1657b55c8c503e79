// Package pagemirror mirrors a single web page to local disk. It fetches the
// root document, rewrites same-origin images, stylesheets and scripts to point
// at local copies, and downloads those assets concurrently.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, fs/).
package pagemirror

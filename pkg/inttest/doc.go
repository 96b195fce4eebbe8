// Package inttest enables writing of integration tests. It sets up an in-memory SQLite database
// migrated like the production one, an HTTP server using our Gin engine and a clock the test can
// control. Every setup function ensures resources are cleaned up after the tests are finished.
package inttest

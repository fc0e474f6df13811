// Package testsupport provides synthetic PGS streams for tests.
package testsupport

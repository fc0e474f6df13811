// Package srt builds, serializes and validates SubRip subtitle documents.
package srt

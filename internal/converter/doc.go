// Package converter turns captured HTML resources into files that can be
// browsed or read without the site: charset normalization, rewriting of
// links to exported paths, and Markdown rendering.
package converter

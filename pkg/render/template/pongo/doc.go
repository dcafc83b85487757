// Package pongo implements template.Engine on top of pongo2, a Django/Jinja
// style engine. Templates are loaded by name from a directory on disk or from
// an fs.FS (usually an embed.FS) and streamed straight into the caller's
// writer.
package pongo

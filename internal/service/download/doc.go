// Package download runs track and album download jobs: it resolves streams,
// stages raw audio in temporary storage, tags it and places the result in the library.
package download

package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type protectedError struct {
	id string
}

func (e protectedError) Error() string {
	return fmt.Sprintf("protected: %s is part of the project template and cannot be renamed or deleted", e.id)
}

func errProtected(id string) error {
	return protectedError{id: id}
}

type kindError struct {
	id   string
	want string
}

func (e kindError) Error() string {
	return fmt.Sprintf("not a %s: %s", e.want, e.id)
}

func errNotFolder(id string) error { return kindError{id: id, want: "folder"} }
func errNotFile(id string) error   { return kindError{id: id, want: "file"} }

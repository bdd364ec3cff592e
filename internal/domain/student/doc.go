// Package student contains the roster domain model.
//
// The package defines:
//
//   - Student, the roster entity (system-assigned ID, unique name)
//   - NormalizeName, the single place where names are validated
//   - Repository and Cache, implemented in infrastructure
//   - StudentRegisteredEvent, published when the roster grows
//
// # Names
//
// A name is trimmed before validation and storage. After trimming it must be
// non-empty and consist only of letters and spaces:
//
//	name, err := student.NormalizeName("  Alice Smith ")
//	// name == "Alice Smith", err == nil
//
//	_, err = student.NormalizeName("R2D2")
//	// errors.Is(err, shared.ErrInvalidName)
//
// Uniqueness is case-sensitive as stored and is enforced by the storage
// layer; Repository.Create reports a violation as shared.ErrDuplicateStudent.
//
// # Lifecycle
//
// Students are created by AddStudent or by the legacy import and are never
// updated or deleted.
package student

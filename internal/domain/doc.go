// Package domain contains the core entities and value objects for pwmguard.
//
// This package has no dependencies on infrastructure concerns (sysfs, files,
// processes, logging) and contains only the rules that every component must
// agree on.
//
// # Entities
//
//   - [Frequency]: a PWM frequency in Hz and its safe bounds
//   - [Reading]: what the driver reports (current frequency, base clock)
//   - [Attempt]: one boot watchdog try, identified by its index
//   - [Configuration]: the last confirmed frequency, applied at next boot
//   - [ConfirmationResult]: the terminal answer of a confirmation session
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Validated before they can reach hardware
//   - Testable without mocks or external systems
package domain

// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Driver]: reads and writes the panel PWM frequency
//   - [ConfigStore]: persists the last confirmed frequency
//   - [AutostartRegistrar]: registers the login-time watchdog
//   - [ConfirmationPrompt]: asks the user to keep or revert a change
//   - [Spawner]: launches the next watchdog process
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with sysfs,
// files, processes, dialogs and zerolog.
package ports

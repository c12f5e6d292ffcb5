// Package platform attaches region events to a region-protection backend.
//
// Enable performs the startup sequence:
//  1. fail with ErrBackendMissing if there is no backend
//  2. warn if the backend's major version is not 7
//  3. register the entry handler with the backend's session registry,
//     failing with ErrRegistrationFailed if it is refused
//  4. initialize the shared directory handle with the backend's regions
//
// Until Enable succeeds every region query returns
// region.ErrDirectoryUnavailable.
//
// LocalBackend is the in-process backend used by the server: regions come
// from world files on disk and sessions from the actor manager.
package platform

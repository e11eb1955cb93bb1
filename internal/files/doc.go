// Package files provides file system operations and discovery utilities
// for the dataset importers.
//
// Manager performs writes through a temporary sibling file followed by a
// rename, so an interrupted download or persist never leaves a truncated
// file behind:
//
//	manager := files.NewManager(logger)
//	err := manager.WriteAtomic(dst, func(w io.Writer) error {
//	    _, err := io.Copy(w, body)
//	    return err
//	})
//
// Discovery lists raw archives and table containers in a provider's data
// directory:
//
//	archives, err := files.NewDiscovery("").FindArchives(paths.CRSP.DataDir)
package files

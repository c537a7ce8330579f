package buffer

import "os"

// WriteBackup copies the current on-disk content of the buffer's file to a
// .bak sibling, so a rewrite can be undone by hand. Call before Save.
func (b *Buffer) WriteBackup() error {
	if b.Path == "" {
		return nil
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(b.Path+".bak", data, 0644)
}

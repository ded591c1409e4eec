// Copyright 2024 The Filequeue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/filequeue/filequeue/golibs/strutil"
)

// GetRoot receives absolute or relative file name and returns first folder.
// examples:
// "" => "", ""
// "/" => "", ""
// "/abc" => "", "abc"
// "/abc/" => "abc", ""
// "/abc/def.js" => "abc", "def.js"
// "/abc/ddd/def.js" => "abc", "ddd/def.js"
// "abc/ddd/def.js" => "abc", "ddd/def.js"
func GetRoot(path string) (string, string) {
	if len(path) == 0 {
		return "", ""
	}

	lastSlash := path[len(path)-1] == '/'

	path = filepath.Clean(path)
	if path[0] == '/' {
		path = path[1:]
	}

	idx := strings.IndexRune(path, '/')
	if idx < 0 {
		if lastSlash {
			return path, ""
		}
		return "", path
	}

	return path[:idx], path[idx+1:]
}

// EnsureDirExists checks whether the dir exists and create the new one if it doesn't
func EnsureDirExists(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		if os.IsNotExist(err) {
			err = os.MkdirAll(dir, 0740)
		}
	} else {
		d.Close()
	}

	if err != nil {
		return fmt.Errorf("ensure dir %s returns error: %w", dir, err)
	}
	return nil
}

func ensureDirName(path string) string {
	if path == "" {
		return ""
	}
	if path[len(path)-1] == '/' {
		return path[:len(path)-1]
	}
	return path
}

// SameFilesystem reports whether dirA and dirB reside on the same
// filesystem, comparing the device id each directory's inode reports. Both
// directories must already exist. It's used to fail fast on setups that
// would otherwise only fail later and confusingly, inside os.Rename, with
// "invalid cross-device link".
func SameFilesystem(dirA, dirB string) (bool, error) {
	var stA, stB syscall.Stat_t
	if err := syscall.Stat(dirA, &stA); err != nil {
		return false, fmt.Errorf("could not stat %s: %w", dirA, err)
	}
	if err := syscall.Stat(dirB, &stB); err != nil {
		return false, fmt.Errorf("could not stat %s: %w", dirB, err)
	}
	return stA.Dev == stB.Dev, nil
}

// ListDir returns files and directories non-recursive (in the dir provided only)
func ListDir(dir string) []os.FileInfo {
	dir = ensureDirName(dir)
	res := make([]os.FileInfo, 0, 10)
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		fpath, _ := filepath.Split(path)
		if ensureDirName(fpath) != dir {
			return nil
		}

		res = append(res, info)
		return nil
	})

	return res
}

// CreateRandomDir creates a randomly name directory in the path with prefix
func CreateRandomDir(path, prefix string) (string, error) {
	return ensureUndique(path, prefix, true)
}

// CreateRandomFileName in the path with prefix, but without creating new file there
func CreateRandomFileName(path, prefix string) (string, error) {
	return ensureUndique(path, prefix, false)
}

// RemoveFiles by path if testFunc() returns true for the FileInfo. The function
// walks into the folders recursively and a folder could be removed if all files from
// the folder are removed as well. testFunc allows to control whether to check a folder
// or not...
func RemoveFiles(path string, testFunc func(path string, fi os.FileInfo) bool) error {
	finfs := ListDir(path)
	for _, fi := range finfs {
		if !testFunc(path, fi) {
			continue
		}

		fileName := filepath.Join(path, fi.Name())
		if fi.IsDir() {
			err := RemoveFiles(filepath.Join(path, fi.Name()), testFunc)
			if err != nil {
				return err
			}
			// ignore the error if not empty
			os.Remove(fileName)
			continue
		}

		if err := os.Remove(fileName); err != nil {
			return err
		}
	}
	return nil
}

// IsDirEmpty returns weather the dir provided by the name is empty or not
func IsDirEmpty(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// CopyDir copies dir by path "from" to the dir by path "to"
func CopyDir(from, to string) error {
	err := EnsureDirExists(to)
	if err != nil {
		return err
	}

	finfos := ListDir(from)
	for _, fi := range finfos {
		if fi.IsDir() {
			err := CopyDir(filepath.Join(from, fi.Name()), filepath.Join(to, fi.Name()))
			if err != nil {
				return err
			}
			continue
		}
		err := copyFile(filepath.Join(from, fi.Name()), filepath.Join(to, fi.Name()))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteTo writes the in stream to the toPath
func WriteTo(toPath string, in io.Reader) error {
	out, err := os.Create(toPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// copyFile copies one file by path "from" to the file by path "to"
func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	return WriteTo(to, in)
}

func ensureUndique(path, prefix string, createDir bool) (string, error) {
	for {
		name := prefix + strutil.RandomString(64)
		filename := filepath.Join(path, name)
		_, err := os.Stat(filename)
		if os.IsNotExist(err) {
			err = nil
			if createDir {
				err = EnsureDirExists(filename)
			}
			return filename, err
		}
	}
}

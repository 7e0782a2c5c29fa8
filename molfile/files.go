/*
 * files.go, part of gomin.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package molfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/gomin"
	v3 "github.com/rmera/gomin/v3"
)

//Compression returns the compression, "gz", "zst" or "" (none), used for the file name,
//according to its extension.
func Compression(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return "gz"
	case ".zst", ".zstd":
		return "zst"
	default:
		return ""
	}
}

//Trim returns name without its compression extension and its molfile extension, if any.
func Trim(name string) string {
	if Compression(name) != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mol", ".sdf", ".mdl":
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

//*zstd.Decoder doesn't implement io.ReadCloser, as its Close method
//doesn't return an error.
type zstdReader struct {
	*zstd.Decoder
}

//Close closes the decoder. It can not be used after this call.
func (z zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

//prepSource opens the file name and returns an object that will
//read data from the file, either 'as is' or decompressing first, depending on the extension.
func prepSource(name string) (io.ReadCloser, *os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	reader := bufio.NewReader(f)
	var ret io.ReadCloser
	switch Compression(name) {
	case "gz":
		ret, err = gzip.NewReader(reader)
	case "zst":
		var d *zstd.Decoder
		d, err = zstd.NewReader(reader)
		if err == nil {
			ret = zstdReader{d}
		}
	default:
		ret = io.NopCloser(reader)
	}
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return ret, f, nil
}

//ReadFile reads a molfile from the file name, which can be compressed with gzip (.gz) or zstd (.zst).
func ReadFile(name string) (*gomin.Topology, *v3.Matrix, error) {
	r, f, err := prepSource(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"prepSource", "ReadFile"}, true}
	}
	defer f.Close()
	defer r.Close()
	top, coords, err := Read(r)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.fileName = name
			err = e
		}
		return nil, nil, errDecorate(err, "ReadFile")
	}
	return top, coords, nil
}

//WriteFile writes top and coords as a molfile to the file name. The file will be compressed with gzip
//or zstd if the name ends with .gz or .zst, respectively.
func WriteFile(name string, top *gomin.Topology, coords *v3.Matrix) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), name, []string{"os.Create", "WriteFile"}, true}
	}
	defer func() {
		if err2 := f.Close(); err2 != nil && err == nil {
			err = Error{err2.Error(), name, []string{"Close", "WriteFile"}, true}
		}
	}()
	var w io.WriteCloser
	switch Compression(name) {
	case "gz":
		w = gzip.NewWriter(f)
	case "zst":
		w, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return Error{err.Error(), name, []string{"zstd.NewWriter", "WriteFile"}, true}
		}
	}
	title := filepath.Base(Trim(name))
	if w == nil {
		return errDecorate(Write(f, top, coords, title), "WriteFile")
	}
	if err = Write(w, top, coords, title); err != nil {
		w.Close()
		return errDecorate(err, "WriteFile")
	}
	if err = w.Close(); err != nil {
		return Error{err.Error(), name, []string{"Close", "WriteFile"}, true}
	}
	return nil
}

/*Package molfile reads and writes MDL V2000 molfiles, the format goMin uses
to exchange structures with the force field engines. Files can be read and written
compressed with gzip or zstd.*/
package molfile

// Package zscs2016c is a driver for the ZSCS2016C RGB, IR and clear light
// sensor on an I²C bus.
//
// The sensor exposes five 16 bit little endian channel registers. Reading the
// three color channels with ReadRawRGB uses one 6 byte transaction, which is
// faster than three separate reads and samples the channels together.
package zscs2016c

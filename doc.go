// Package ledsense calibrates a color sensor against white and black
// reference surfaces and drives LED strips, locally or over Open Pixel
// Control and MQTT, from the normalised readings.
package ledsense

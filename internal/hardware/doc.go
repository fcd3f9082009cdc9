// Package hardware provides the fixture drivers the executor writes to.
//
// Simulator keeps head state in memory and is used when
// signal.hardware.driver is "simulated". MQTTDriver publishes each fixture
// command to sigos/<host>/fixture/<head> for decoder boards on the layout
// bus. Both satisfy executor.Driver.
package hardware

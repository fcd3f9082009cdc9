// Package fixture describes the physical signal a controller drives.
//
// An Inventory lists the heads on the mast, the device on each head
// (semaphore, light or nothing), the legal colors of each light, the travel
// of each semaphore and whether a number-plate is fitted. It is produced
// once from configuration and is read-only afterwards.
package fixture

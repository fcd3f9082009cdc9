// Package peer links SigOS controllers over MQTT.
//
// A controller accepts request/release commands from other controllers on
// sigos/<host>/command and answers on sigos/<host>/ack. The requesting
// controller's hostname is the request source, so when its retained status
// on sigos/<peer>/status turns offline every request it left behind is
// released. The displayed rule is kept retained on sigos/<host>/aspect for
// dashboards and for peers that mirror this signal. The link in turn keeps
// the last aspect each peer published.
package peer

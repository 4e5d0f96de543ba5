// Package transport sends datagrams for the RTP session.
//
// Transport is the small interface the session writes through: one Send per
// RTP packet to an explicit destination. UDPTransport implements it over a
// bound net.UDPConn with an optional per-write deadline, and Factory lets a
// session open a fresh socket on every Start. Resolver turns the destination
// host given to Start into a UDP address.
//
// Example:
//
//	tr, err := transport.NewUDPTransport(":0", transport.WithWriteTimeout(time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	addr, err := transport.NewNetResolver().ResolveUDPAddr(ctx, "192.168.1.20", 5004)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = tr.Send(packet, addr)
package transport

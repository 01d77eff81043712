package proxy

import (
	"bufio"
	"io"
	"net"
	"sync"
)

// bridge splices the two connections after a protocol switch. Reads go
// through the existing buffered readers so bytes the peer sent right behind
// its head are not lost; writes go straight to the sockets. Either side
// closing tears down both, and the counts are per direction.
func bridge(clientConn net.Conn, clientBR *bufio.Reader, upstreamConn net.Conn, upstreamBR *bufio.Reader) (clientBytes, backendBytes int64) {
	var once sync.Once
	closeBoth := func() {
		once.Do(func() {
			clientConn.Close()
			upstreamConn.Close()
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer closeBoth()
		clientBytes, _ = io.Copy(upstreamConn, clientBR)
	}()
	go func() {
		defer wg.Done()
		defer closeBoth()
		backendBytes, _ = io.Copy(clientConn, upstreamBR)
	}()
	wg.Wait()
	return clientBytes, backendBytes
}

/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

//go:build linux

package evloop

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// epollPoller multiplexes fds via epoll and carries its own eventfd as the
// wakeup source, exactly the role afb's event manager gives a pipe/eventfd
// pair (spec.md §4.1).
type epollPoller struct {
	epfd   int
	wakeFD int
}

func newPoller() (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wfd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	p := &epollPoller{epfd: epfd, wakeFD: wfd}
	if err := p.Add(wfd, In); err != nil {
		_ = unix.Close(wfd)
		_ = unix.Close(epfd)
		return nil, err
	}
	return p, nil
}

func toEpollEvents(e FDEvents) uint32 {
	var out uint32
	if e&In != 0 {
		out |= unix.EPOLLIN
	}
	if e&Out != 0 {
		out |= unix.EPOLLOUT
	}
	if e&Err != 0 {
		out |= unix.EPOLLERR
	}
	if e&Hup != 0 {
		out |= unix.EPOLLHUP
	}
	return out
}

func fromEpollEvents(e uint32) FDEvents {
	var out FDEvents
	if e&unix.EPOLLIN != 0 {
		out |= In
	}
	if e&unix.EPOLLOUT != 0 {
		out |= Out
	}
	if e&unix.EPOLLERR != 0 {
		out |= Err
	}
	if e&unix.EPOLLHUP != 0 {
		out |= Hup
	}
	return out
}

func (p *epollPoller) Add(fd int, events FDEvents) error {
	ev := unix.EpollEvent{Events: toEpollEvents(events), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) Modify(fd int, events FDEvents) error {
	ev := unix.EpollEvent{Events: toEpollEvents(events), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) Wait(timeoutMs int) ([]PollEvent, error) {
	raw := make([]unix.EpollEvent, 32)
	n, err := unix.EpollWait(p.epfd, raw, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]PollEvent, 0, n)
	for i := 0; i < n; i++ {
		fd := int(raw[i].Fd)
		if fd == p.wakeFD {
			p.drainWake()
			continue
		}
		out = append(out, PollEvent{FD: fd, Events: fromEpollEvents(raw[i].Events)})
	}
	return out, nil
}

func (p *epollPoller) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(p.wakeFD, buf[:])
}

func (p *epollPoller) Wakeup() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(p.wakeFD, buf[:])
	return err
}

func (p *epollPoller) Close() error {
	_ = unix.Close(p.wakeFD)
	return unix.Close(p.epfd)
}

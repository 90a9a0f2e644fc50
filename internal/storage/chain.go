package storage

import (
	"context"
	"errors"
	"log"
)

// Chain reads and writes through the remote, local and memory tiers.
// A nil remote behaves as permanently unavailable.
type Chain struct {
	remote   Backend
	local    Backend
	memory   Backend
	observer OpObserver
}

// NewChain builds the fallback chain. remote may be nil; local and memory are required.
func NewChain(remote, local, memory Backend) *Chain {
	return &Chain{
		remote: remote,
		local:  local,
		memory: memory,
	}
}

// SetObserver registers a callback invoked for every tier operation
func (c *Chain) SetObserver(o OpObserver) {
	c.observer = o
}

// HasRemote reports whether a remote tier is configured
func (c *Chain) HasRemote() bool {
	return c.remote != nil
}

func (c *Chain) observe(tier, op string, err error) {
	if c.observer != nil {
		c.observer(tier, op, Result(err))
	}
}

// Get returns the first value found, trying remote, then local, then memory.
// A remote hit is copied into the local tier on a best-effort basis.
func (c *Chain) Get(ctx context.Context, key string) (string, error) {
	if c.remote != nil {
		v, err := c.remote.Get(ctx, key)
		c.observe(TierRemote, OpGet, err)
		if err == nil {
			serr := c.local.Set(ctx, key, v)
			c.observe(TierLocal, OpSet, serr)
			if serr != nil {
				log.Printf("⚠️  [STORAGE] Could not cache remote value for %s locally: %v", key, serr)
			}
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.Printf("⚠️  [STORAGE] Remote read of %s failed, falling back to local: %v", key, err)
		}
	}

	v, err := c.local.Get(ctx, key)
	c.observe(TierLocal, OpGet, err)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("⚠️  [STORAGE] Local read of %s failed, falling back to memory: %v", key, err)
	}

	v, err = c.memory.Get(ctx, key)
	c.observe(TierMemory, OpGet, err)
	if err == nil {
		return v, nil
	}

	return "", ErrNotFound
}

// Set writes the remote tier best effort and the local tier always, falling
// back to memory when the local write fails. Remote failures are not returned.
func (c *Chain) Set(ctx context.Context, key, value string) error {
	if c.remote != nil {
		err := c.remote.Set(ctx, key, value)
		c.observe(TierRemote, OpSet, err)
		if err != nil {
			log.Printf("⚠️  [STORAGE] Remote write of %s failed: %v", key, err)
		}
	}

	err := c.local.Set(ctx, key, value)
	c.observe(TierLocal, OpSet, err)
	if err == nil {
		return nil
	}
	log.Printf("⚠️  [STORAGE] Local write of %s failed, keeping it in memory: %v", key, err)

	err = c.memory.Set(ctx, key, value)
	c.observe(TierMemory, OpSet, err)
	return err
}

// Delete removes key from every tier. Remote failures are logged only.
func (c *Chain) Delete(ctx context.Context, key string) error {
	if c.remote != nil {
		err := c.remote.Delete(ctx, key)
		c.observe(TierRemote, OpDelete, err)
		if err != nil {
			log.Printf("⚠️  [STORAGE] Remote delete of %s failed: %v", key, err)
		}
	}

	lerr := c.local.Delete(ctx, key)
	c.observe(TierLocal, OpDelete, lerr)
	if lerr != nil {
		log.Printf("⚠️  [STORAGE] Local delete of %s failed: %v", key, lerr)
	}

	merr := c.memory.Delete(ctx, key)
	c.observe(TierMemory, OpDelete, merr)

	return errors.Join(lerr, merr)
}

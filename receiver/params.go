package receiver

// Parameter access shares mu with the acquisition loop since device registries are not safe for
// concurrent use. Every successful write re-reads the calibration, best effort.

func (r *Receiver) checkOpen() error {
	if r.State() == StateStopped {
		return ErrClosed
	}
	return nil
}

func (r *Receiver) afterWrite(name string, err error) error {
	if err != nil {
		return err
	}
	params, calErr := r.readCalibration()
	if calErr != nil {
		r.logger.Debugw("keeping previous calibration", "changed", name, "error", calErr)
		return nil
	}
	r.params = params
	return nil
}

// IsWritable reports whether name can currently be written.
func (r *Receiver) IsWritable(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.dev.IsWritable(name)
}

// GetBoolean reads a boolean parameter.
func (r *Receiver) GetBoolean(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	return r.dev.GetBoolean(name)
}

// SetBoolean writes a boolean parameter.
func (r *Receiver) SetBoolean(name string, v bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.afterWrite(name, r.dev.SetBoolean(name, v))
}

// GetEnum reads an enum parameter and its allowed entries.
func (r *Receiver) GetEnum(name string) (string, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return "", nil, err
	}
	return r.dev.GetEnum(name)
}

// SetEnum writes an enum parameter. Writing LineSource while Out1 is selected switches the match
// tolerance right away.
func (r *Receiver) SetEnum(name, v string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	if err := r.afterWrite(name, r.dev.SetEnum(name, v)); err != nil {
		return err
	}
	if name == "LineSource" {
		if selector, _, err := r.dev.GetEnum("LineSelector"); err == nil && selector == exposureLine {
			r.setToleranceFor(v)
		}
	}
	return nil
}

// GetFloat reads a float parameter.
func (r *Receiver) GetFloat(name string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return 0, err
	}
	return r.dev.GetFloat(name)
}

// SetFloat writes a float parameter.
func (r *Receiver) SetFloat(name string, v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.afterWrite(name, r.dev.SetFloat(name, v))
}

// GetInteger reads an integer parameter.
func (r *Receiver) GetInteger(name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return 0, err
	}
	return r.dev.GetInteger(name)
}

// SetInteger writes an integer parameter.
func (r *Receiver) SetInteger(name string, v int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.afterWrite(name, r.dev.SetInteger(name, v))
}

// GetString reads a string parameter.
func (r *Receiver) GetString(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return "", err
	}
	return r.dev.GetString(name)
}

// SetString writes a string parameter.
func (r *Receiver) SetString(name, v string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.afterWrite(name, r.dev.SetString(name, v))
}

// ExecuteCommand runs a command parameter.
func (r *Receiver) ExecuteCommand(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.afterWrite(name, r.dev.ExecuteCommand(name))
}
